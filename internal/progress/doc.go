// Package progress provides the shared download progress gauge and its
// terminal renderer.
//
// The Gauge holds a single percentage shared by every download in a
// batch. Writers do not coordinate: the most recent write wins, and
// after a batch the gauge is reset to zero. The Reporter redraws the
// gauge on one terminal line until stopped.
//
// # Usage
//
//	var gauge progress.Gauge
//	reporter := progress.NewReporter(&gauge, progress.Options{
//	    Output: os.Stdout,
//	})
//
//	reporter.Start()
//	defer reporter.Stop()
//
//	// Update as bytes arrive
//	gauge.Set(42.5)
//
// # Output Format
//
//	[xossdb] Progress: 42.5% | ngc3372_halpha.fits
package progress
