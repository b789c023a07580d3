package archive

import (
	"fmt"
	"path"
	"time"
)

// ObjectKey derives the object-storage key for one archived item. The message
// id plus a millisecond timestamp keeps keys collision-free across concurrent
// items; the source file's extension is preserved so locators stay playable.
func ObjectKey(messageID, filename string, ts time.Time) string {
	ext := path.Ext(filename)
	if ext == "" {
		ext = ".mp4"
	}
	return fmt.Sprintf("%s_%d%s", messageID, ts.UnixMilli(), ext)
}
