package renderer

import (
	"context"

	"github.com/pkg/errors"
)

// FallbackExporter uses Fallback when Primary reports that pandoc is missing.
type FallbackExporter struct {
	Primary  Exporter
	Fallback Exporter
	// OnFallback is called before falling back, when set.
	OnFallback func(err error)
}

// Export tries Primary, then Fallback if pandoc is unavailable. Other errors are returned as is.
func (e *FallbackExporter) Export(ctx context.Context, fragment Fragment, opts ExportOptions) (path string, err error) {
	path, err = e.Primary.Export(ctx, fragment, opts)
	if err == nil || !errors.Is(err, ErrPandocMissing) || e.Fallback == nil {
		return path, err
	}

	if e.OnFallback != nil {
		e.OnFallback(err)
	}

	path, err = e.Fallback.Export(ctx, fragment, opts)
	return path, err
}
