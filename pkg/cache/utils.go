package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// globEscaper escapes the characters Redis MATCH and path.Match treat as
// wildcards.
var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// GenerateKey joins a namespace and an identifier, e.g. "figure:JWST".
func GenerateKey(prefix string, id string) string {
	return prefix + ":" + id
}

// GenerateKeyWithParams appends each parameter to prefix, colon separated.
func GenerateKeyWithParams(prefix string, params ...interface{}) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, param := range params {
		fmt.Fprintf(&b, ":%v", param)
	}
	return b.String()
}

// HashKey returns the hex MD5 digest of key. Used for file names, not security.
func HashKey(key string) string {
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

// BuildPattern matches every key starting with prefix. Wildcards inside
// prefix are matched literally.
func BuildPattern(prefix string) string {
	return globEscaper.Replace(prefix) + "*"
}
