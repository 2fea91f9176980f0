// Package runtime loads printnf guests and drives their frame loop.
//
// A Runtime owns one wazero runtime with the env host module instantiated.
// Each loaded guest is an Instance exposing the guest's entry points:
//
//	rt, err := runtime.New(ctx, &runtime.Config{
//		Env: host.Config{Stdout: os.Stdout},
//	})
//	if err != nil {
//		return err
//	}
//	defer rt.Close(ctx)
//
//	inst, err := rt.Load(ctx, wasmBytes)
//	if err != nil {
//		return err
//	}
//	defer inst.Close(ctx)
//
//	inst.SetWindowSize(ctx, 1440, 810)
//	inst.Init(ctx)
//	for {
//		inst.Step(ctx, dt)
//	}
//
// # Frame Rule
//
// Step draws only when the frame delta is below DrawThreshold. Deltas of
// LongFrameThreshold or more are logged as a warning and skipped, as are the
// ones in between.
package runtime
