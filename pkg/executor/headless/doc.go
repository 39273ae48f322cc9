// Package headless implements the non-interactive executor that documents a
// notebook in one pass.
//
// The executor loads a notebook, picks the code cells named by the run
// config, and runs the AI note command on each of them through the same
// orchestrator the TUI uses. The notebook is saved once at the end and an
// execution report is written next to it.
//
//	┌────────────────────────────────────────────┐
//	│              Headless Executor             │
//	│  - Cell selection (globs, indices)         │
//	│  - Progress logging                        │
//	│  - Artifact generation                     │
//	└──────────────────┬─────────────────────────┘
//	                   │ nb.Select(id)
//	                   ▼
//	        ┌──────────────────────┐
//	        │   notes.Orchestrator │
//	        │   InsertAINote       │
//	        └──────────┬───────────┘
//	                   ▼
//	        ┌──────────────────────┐
//	        │   host.App + kernel  │
//	        └──────────────────────┘
//
// Example usage:
//
//	config, _ := headless.LoadConfig("docs.yaml")
//	k := kernel.NewLLMKernel(provider)
//	executor, _ := headless.NewExecutor(k, config, notesSection.OrchestratorOptions()...)
//
//	if err := executor.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Cells are processed bottom-up. Every target is addressed by cell id, so a
// note inserted above one target never changes which cell the next run
// documents.
//
// Artifacts:
//
// - execution.json: full execution summary with one entry per cell
// - summary.md: human-readable markdown summary
package headless
