package errors

import "sync"

// ErrorHook is called for every error built through ErrorBuilder.Build.
// Hooks must not block; they run on the caller's goroutine.
type ErrorHook func(ee *EnhancedError)

var (
	hooks   []ErrorHook
	hooksMu sync.RWMutex
)

// AddErrorHook registers a hook, e.g. a metrics counter
func AddErrorHook(hook ErrorHook) {
	if hook == nil {
		return
	}
	hooksMu.Lock()
	defer hooksMu.Unlock()
	hooks = append(hooks, hook)
}

// ClearErrorHooks removes all registered hooks
func ClearErrorHooks() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	hooks = nil
}

func runHooks(ee *EnhancedError) {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	for _, hook := range hooks {
		hook(ee)
	}
}
