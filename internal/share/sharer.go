package share

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// CopiedMessage confirms a clipboard share.
const CopiedMessage = "Link copied to clipboard"

// ErrUnsupported is returned when no share mechanism is available.
var ErrUnsupported = errors.New("share: not supported on this platform")

// Sharer hands a URL to the platform.
type Sharer interface {
	Share(ctx context.Context, link string) error
}

// SharerFunc adapts a function to Sharer.
type SharerFunc func(ctx context.Context, link string) error

func (f SharerFunc) Share(ctx context.Context, link string) error { return f(ctx, link) }

// Clipboard copies the link and then shows a blocking notification.
type Clipboard struct {
	write  func(string) error // nil means the system clipboard
	notify func(string)
}

// NewClipboard uses the system clipboard. notify may be nil.
func NewClipboard(notify func(string)) *Clipboard {
	return &Clipboard{notify: notify}
}

func (c *Clipboard) Share(ctx context.Context, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	write := c.write
	if write == nil {
		if clipboard.Unsupported {
			return ErrUnsupported
		}
		write = clipboard.WriteAll
	}
	if err := write(link); err != nil {
		return fmt.Errorf("share: clipboard: %w", err)
	}
	if c.notify != nil {
		c.notify(CopiedMessage)
	}
	return nil
}

// Fallback tries native first and uses fallback when native is nil or
// reports ErrUnsupported.
func Fallback(native, fallback Sharer) Sharer {
	return SharerFunc(func(ctx context.Context, link string) error {
		if native != nil {
			err := native.Share(ctx, link)
			if !errors.Is(err, ErrUnsupported) {
				return err
			}
		}
		if fallback == nil {
			return ErrUnsupported
		}
		return fallback.Share(ctx, link)
	})
}
