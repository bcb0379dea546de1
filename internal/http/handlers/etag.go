package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// respondCached writes payload with a content-derived ETag and answers 304
// when the client already holds the same representation.
func respondCached(ctx *gin.Context, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		ctx.JSON(status, payload)
		return
	}

	tag := etagFor(body)
	ctx.Header("ETag", tag)
	ctx.Header("Cache-Control", "no-cache")

	if matchesETag(ctx.GetHeader("If-None-Match"), tag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.Data(status, "application/json; charset=utf-8", body)
}

func etagFor(body []byte) string {
	sum := sha256.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

// matchesETag applies weak comparison to an If-None-Match list.
func matchesETag(header, tag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}

	want := opaqueTag(tag)
	for candidate := range strings.SplitSeq(header, ",") {
		if opaqueTag(candidate) == want {
			return true
		}
	}
	return false
}

func opaqueTag(raw string) string {
	v := strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(v, "W/"); ok {
		v = strings.TrimSpace(rest)
	}
	return v
}
