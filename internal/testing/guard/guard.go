package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("BODEGA_TEST_MODE") == "" {
			_ = os.Setenv("BODEGA_TEST_MODE", "1")
		}
	})
}
