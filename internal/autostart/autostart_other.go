//go:build !linux && !darwin && !windows

package autostart

func New(string) (Manager, error) {
	return nil, ErrUnsupported
}
