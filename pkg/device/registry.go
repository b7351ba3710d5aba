package device

import "sync"

// openPaths tracks HID paths held by live sessions in this process, so
// a second New on the same path fails fast instead of interleaving
// reports with the first.
var openPaths = struct {
	sync.Mutex
	m map[string]struct{}
}{m: make(map[string]struct{})}

func claimPath(path string) error {
	openPaths.Lock()
	defer openPaths.Unlock()

	if _, ok := openPaths.m[path]; ok {
		return ErrDeviceBusy
	}
	openPaths.m[path] = struct{}{}

	return nil
}

func releasePath(path string) {
	openPaths.Lock()
	defer openPaths.Unlock()

	delete(openPaths.m, path)
}
