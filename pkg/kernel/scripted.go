package kernel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/docshelper/pkg/notebook"
)

// Step is one output produced by a ScriptedKernel, after an optional delay.
type Step struct {
	Delay  time.Duration
	Record notebook.Record
}

// ScriptedKernel replays a fixed list of outputs for every executed cell.
// Steps without delays are appended before Execute returns; once a step has
// a delay the rest are appended from a goroutine.
type ScriptedKernel struct {
	steps []Step

	mu       sync.Mutex
	executed []string
	wg       sync.WaitGroup

	// BeforeReturn, when set, runs after the synchronous steps and before
	// Execute returns.
	BeforeReturn func(cell *notebook.Cell)
}

// NewScriptedKernel creates a kernel that replays steps.
func NewScriptedKernel(steps ...Step) *ScriptedKernel {
	return &ScriptedKernel{steps: steps}
}

// Execute clears the cell's outputs and replays the script.
func (k *ScriptedKernel) Execute(ctx context.Context, cell *notebook.Cell) error {
	outputs := cell.Outputs()
	if outputs == nil {
		return fmt.Errorf("cell %s is not a code cell", cell.ID())
	}

	k.mu.Lock()
	k.executed = append(k.executed, cell.ID())
	k.mu.Unlock()

	outputs.Clear()

	i := 0
	for ; i < len(k.steps) && k.steps[i].Delay == 0; i++ {
		outputs.Append(k.steps[i].Record)
	}

	if rest := k.steps[i:]; len(rest) > 0 {
		k.wg.Add(1)
		go func() {
			defer k.wg.Done()
			for _, step := range rest {
				select {
				case <-ctx.Done():
					return
				case <-time.After(step.Delay):
				}
				outputs.Append(step.Record)
			}
		}()
	}

	if k.BeforeReturn != nil {
		k.BeforeReturn(cell)
	}
	return nil
}

// Executed returns the ids of executed cells, in order.
func (k *ScriptedKernel) Executed() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]string(nil), k.executed...)
}

// Wait blocks until delayed steps have been appended.
func (k *ScriptedKernel) Wait() {
	k.wg.Wait()
}
