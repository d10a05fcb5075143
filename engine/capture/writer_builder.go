package capture

// WriterBuilderOption is a functional option for configuring a Writer.
type WriterBuilderOption func(*writer)

// WithDir sets the output directory.
//
// Parameters:
//   - dir: the directory captures are written to
//
// Returns:
//   - WriterBuilderOption: a function that applies the directory option
func WithDir(dir string) WriterBuilderOption {
	return func(w *writer) {
		if dir != "" {
			w.dir = dir
		}
	}
}

// WithFormat sets the encoding for new files.
//
// Parameters:
//   - f: the format
//
// Returns:
//   - WriterBuilderOption: a function that applies the format option
func WithFormat(f Format) WriterBuilderOption {
	return func(w *writer) {
		if f != "" {
			w.format = f
		}
	}
}

// WithWorkers sets how many goroutines encode files concurrently.
//
// Parameters:
//   - n: the worker count, values below 1 are ignored
//
// Returns:
//   - WriterBuilderOption: a function that applies the worker option
func WithWorkers(n int) WriterBuilderOption {
	return func(w *writer) {
		if n > 0 {
			w.workers = n
		}
	}
}
