// Package airway keeps a surface populated with airplanes.
//
// An [Airway] ties together the pieces of the admission loop:
//
//   - [Capacity]: how many airplanes fit a surface of a given height
//   - [Factory]: creates one airplane with a random orientation
//   - [Population]: admits one airplane or evicts the overflow
//   - [Scheduler]: re-arms itself after every tick until the surface is full
//   - [Watcher]: restarts the scheduler when the surface is resized
//
// # Example
//
//	pane := surface.NewPane(0)
//	a, err := airway.New(pane, config.Options{Lazy: config.Ptr(false)})
//	if err != nil {
//		return err
//	}
//	a.Execute()
//	defer a.Close()
//
// # Thread Safety
//
// Airway methods may be called from any goroutine. Timer callbacks and
// resize notifications are serialized by the scheduler, so the surface is
// only touched by one tick at a time. Nothing stops another actor from
// mutating the surface between a tick's read and its eviction.
package airway
