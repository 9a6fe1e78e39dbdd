package logging_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvid-systems/entropic/logging"
	"github.com/corvid-systems/entropic/status"
)

func TestEmit_NoCallbackRegisteredIsNoop(t *testing.T) {
	logging.Clear()
	logging.Emit(logging.LevelInfo, status.OK, "should go nowhere")
}

func TestEmit_DeliversToRegisteredCallback(t *testing.T) {
	defer logging.Clear()

	var (
		gotLevel   logging.Level
		gotCode    status.Code
		gotMessage string
	)

	logging.SetCallback(func(level logging.Level, code status.Code, message string) {
		gotLevel = level
		gotCode = code
		gotMessage = message
	})

	logging.Emit(logging.LevelWarning, status.CodeSeedSignatureInvalid, "seed rejected")

	require.Equal(t, logging.LevelWarning, gotLevel)
	require.Equal(t, status.CodeSeedSignatureInvalid, gotCode)
	require.Equal(t, "seed rejected", gotMessage)
}

func TestClear_StopsDelivery(t *testing.T) {
	called := false
	logging.SetCallback(func(logging.Level, status.Code, string) { called = true })
	logging.Clear()

	logging.Emit(logging.LevelError, status.OK, "ignored")
	require.False(t, called)
}

func TestConcurrentRegistrationAndEmitDoesNotRace(t *testing.T) {
	defer logging.Clear()

	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()

			logging.SetCallback(func(logging.Level, status.Code, string) {})
		}()

		go func() {
			defer wg.Done()

			logging.Emit(logging.LevelDebug, status.OK, "tick")
		}()
	}

	wg.Wait()
}

func TestLevel_StringsAreStable(t *testing.T) {
	require.Equal(t, "warning", logging.LevelWarning.String())
	require.Equal(t, "trace", logging.LevelTrace.String())
}
