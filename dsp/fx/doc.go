// Package fx builds named effect units (delay, distortion, phaser, reverb,
// tremolo) out of primitive units.
//
// Every builder follows the same steps: allocate the internal units, resolve
// the caller's Settings over the kind defaults, apply the resolved values to
// unit parameters, and wire a fixed Topology through the route package. The
// returned handle exposes only Input and Output, so it can be passed to
// route.Connect like any other endpoint.
//
// Reverb depends on an impulse response fetched by a Loader. Its builder
// returns a pending handle immediately; the same handle gains its ports once
// the load completes:
//
//	rv, _ := fx.NewReverb(ctx, loader, fx.Settings{Str: map[string]string{"reverbType": "hall"}})
//	if err := rv.Wait(context.Background()); err != nil {
//		// the handle stays pending forever
//	}
//	_ = route.Connect(ctx, src, rv, dst)
//
// Registry maps kind names to builders; DefaultRegistry registers all five.
package fx
