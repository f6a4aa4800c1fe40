// Package buffer provides a fixed-capacity ring buffer for streaming sample
// data.
//
// Ring is a bounded FIFO over a single backing slice. Unlike buffers that
// overwrite their oldest data when full, Ring refuses writes once capacity is
// reached: the producer observes ErrFull and decides what to do with the
// remainder. This makes it suitable as the staging store between an audio
// byte stream and a windowed feature extractor, where silently dropping or
// overwriting samples would corrupt the analysis windows downstream.
//
// Ring is owned by a single caller and does no internal locking. All
// operations run to completion without blocking, and the backing slice is
// allocated exactly once.
package buffer
