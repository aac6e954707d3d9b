package resolve

import (
	"path"
	"strings"
)

// DestinationObjectName decides the full object name for uploading a single
// local file to destKey.
//
// Rules, in order:
//   - destKey empty or ending with the separator: destKey + localBase.
//   - destKey contains a separator, its last segment has no extension, and
//     that segment differs from localBase: destKey is treated as a directory
//     and localBase is appended.
//   - otherwise destKey is the object name verbatim.
//
// The directory heuristic is deliberately permissive: an extensionless key
// that is intended as a literal filename will be classified as a directory.
// Callers that need the literal name must give it an extension or make it
// equal to the source basename.
func DestinationObjectName(localBase, destKey string) string {
	if destKey == "" || strings.HasSuffix(destKey, "/") {
		return destKey + localBase
	}

	if strings.Contains(destKey, "/") {
		last := path.Base(destKey)
		if !strings.Contains(last, ".") && last != localBase {
			return destKey + "/" + localBase
		}
	}

	return destKey
}

// UploadPrefix decides the remote prefix for uploading a directory tree.
// File keys join the prefix with each file's tree-relative path; the source
// directory's own name is never inserted, so `dir/a.txt` uploaded to
// `prefix/` becomes `prefix/a.txt`. An empty destKey defaults to the source
// directory's basename; anything else is used with surrounding separators
// stripped.
func UploadPrefix(destKey, sourceDirBase string) string {
	key := strings.Trim(destKey, "/")
	if key == "" {
		return sourceDirBase
	}
	return key
}
