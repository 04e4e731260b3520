package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Store hooks
	s := NoopStoreHooks{}
	s.OnLoad(ctx, "board.json", 512, time.Millisecond, nil)
	s.OnSave(ctx, "board.json", 512, time.Millisecond, errors.New("disk full"))
	s.OnRetry(ctx, "load", "board.json", 1, errors.New("busy"))
	s.OnBackup(ctx, "board.json", "board.json.backup", nil)
	s.OnLock(ctx, "board.json", 10*time.Millisecond, nil)

	// Validation hooks
	v := NoopValidationHooks{}
	v.OnValidate(ctx, "semantic", 1, 2, time.Millisecond)
	v.OnSchemaSkipped(ctx, "custom.json", errors.New("missing"))
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}
	if _, ok := Validation().(NoopValidationHooks); !ok {
		t.Error("Validation() should return NoopValidationHooks by default")
	}

	// Set custom hooks
	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	customValidation := &testValidationHooks{}
	SetValidationHooks(customValidation)
	if Validation() != customValidation {
		t.Error("SetValidationHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Reset() should restore NoopStoreHooks")
	}
	if _, ok := Validation().(NoopValidationHooks); !ok {
		t.Error("Reset() should restore NoopValidationHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testStoreHooks{}
	SetStoreHooks(custom)

	// Setting nil should be ignored
	SetStoreHooks(nil)

	if Store() != custom {
		t.Error("SetStoreHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testStoreHooks struct{ NoopStoreHooks }
type testValidationHooks struct{ NoopValidationHooks }
