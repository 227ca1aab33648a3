package phases

import (
	"fmt"
	"strings"
	"sync"
)

// Context stores values shared between phases and the operator's answers.
// The presentation layer reads it while the manager writes, hence the lock.
type Context struct {
	mu    sync.RWMutex
	store map[string]any
}

// NewContext creates an empty context.
func NewContext() *Context {
	return &Context{
		store: make(map[string]any),
	}
}

// Set assigns a value under the provided key.
func (c *Context) Set(key string, value any) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = make(map[string]any)
	}
	c.store[key] = value
}

// Get retrieves a value, returning false when the key is not present.
func (c *Context) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.store[key]
	return val, ok
}

// Delete removes a key.
func (c *Context) Delete(key string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
}

func inputKey(phaseID, inputID string) string {
	return fmt.Sprintf("phase:%s:input:%s", phaseID, inputID)
}

// SetInput stores an operator answer for a phase input.
func SetInput(ctx *Context, phaseID, inputID string, value any) {
	ctx.Set(inputKey(phaseID, inputID), value)
}

// GetInput retrieves a stored answer.
func GetInput(ctx *Context, phaseID, inputID string) (any, bool) {
	return ctx.Get(inputKey(phaseID, inputID))
}

// InputString returns the trimmed answer, reporting false when it is
// missing or blank.
func InputString(ctx *Context, phaseID, inputID string) (string, bool) {
	val, ok := GetInput(ctx, phaseID, inputID)
	if !ok || val == nil {
		return "", false
	}
	str := strings.TrimSpace(fmt.Sprint(val))
	if str == "" {
		return "", false
	}
	return str, true
}

// RequireInput returns the answer for def, or an InputRequestError asking the
// operator again when the answer is missing or rejected by check. The
// rejection message becomes the request reason.
func RequireInput(ctx *Context, phaseID string, def InputDefinition, check func(string) error) (string, error) {
	value, ok := InputString(ctx, phaseID, def.ID)
	if !ok {
		return "", InputRequestError{PhaseID: phaseID, Input: def}
	}
	if (def.Kind == InputKindSelect || def.Kind == InputKindConfirm) && !def.HasOption(value) {
		return "", InputRequestError{PhaseID: phaseID, Input: def, Reason: fmt.Sprintf("%q is not one of the available choices", value)}
	}
	if check != nil {
		if err := check(value); err != nil {
			return "", InputRequestError{PhaseID: phaseID, Input: def, Reason: err.Error()}
		}
	}
	return value, nil
}

// RequireConfirm is RequireInput for yes/no questions.
func RequireConfirm(ctx *Context, phaseID string, def InputDefinition) (bool, error) {
	def.Kind = InputKindConfirm
	if len(def.Options) == 0 {
		def.Options = ConfirmOptions()
	}
	value, err := RequireInput(ctx, phaseID, def, nil)
	if err != nil {
		return false, err
	}
	return value == ConfirmYes, nil
}
