package manifest

import "runtime"

func currentGOOS() string {
	return runtime.GOOS
}
