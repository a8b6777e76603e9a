package http

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// digestNonceCount is fixed because every challenge is answered once
const digestNonceCount = "00000001"

func isDigestChallenge(header string) bool {
	return len(header) >= 7 && strings.EqualFold(header[:7], "Digest ")
}

// parseDigestParams reads the key=value pairs of a Digest header. Quoted
// values may contain commas and backslash escapes.
func parseDigestParams(header string) map[string]string {
	if isDigestChallenge(header) {
		header = header[7:]
	}

	params := make(map[string]string)
	for i := 0; i < len(header); {
		for i < len(header) && (header[i] == ' ' || header[i] == ',') {
			i++
		}
		eq := strings.IndexByte(header[i:], '=')
		if eq < 0 {
			break
		}
		key := strings.ToLower(strings.TrimSpace(header[i : i+eq]))
		i += eq + 1

		var value strings.Builder
		if i < len(header) && header[i] == '"' {
			i++
			for i < len(header) && header[i] != '"' {
				if header[i] == '\\' && i+1 < len(header) {
					i++
				}
				value.WriteByte(header[i])
				i++
			}
			i++
		} else {
			end := strings.IndexByte(header[i:], ',')
			if end < 0 {
				end = len(header) - i
			}
			value.WriteString(strings.TrimSpace(header[i : i+end]))
			i += end
		}
		params[key] = value.String()
	}
	return params
}

// digestAuthorization answers an RFC 2617 challenge with MD5. Of the offered
// qop values only "auth" is used; without it the legacy response is sent.
func digestAuthorization(challenge map[string]string, method, uri, username, password, cnonce string) string {
	qop := ""
	for _, q := range strings.Split(challenge["qop"], ",") {
		if strings.TrimSpace(q) == "auth" {
			qop = "auth"
		}
	}

	ha1 := md5Hex(username + ":" + challenge["realm"] + ":" + password)
	ha2 := md5Hex(method + ":" + uri)
	var response string
	if qop != "" {
		response = md5Hex(strings.Join([]string{ha1, challenge["nonce"], digestNonceCount, cnonce, qop, ha2}, ":"))
	} else {
		response = md5Hex(ha1 + ":" + challenge["nonce"] + ":" + ha2)
	}

	parts := []string{
		fmt.Sprintf(`username="%s"`, username),
		fmt.Sprintf(`realm="%s"`, challenge["realm"]),
		fmt.Sprintf(`nonce="%s"`, challenge["nonce"]),
		fmt.Sprintf(`uri="%s"`, uri),
		fmt.Sprintf(`response="%s"`, response),
	}
	if alg := challenge["algorithm"]; strings.EqualFold(alg, "MD5") {
		parts = append(parts, "algorithm="+alg)
	}
	if qop != "" {
		parts = append(parts, "qop="+qop, "nc="+digestNonceCount, fmt.Sprintf(`cnonce="%s"`, cnonce))
	}
	if opaque := challenge["opaque"]; opaque != "" {
		parts = append(parts, fmt.Sprintf(`opaque="%s"`, opaque))
	}
	return "Digest " + strings.Join(parts, ", ")
}

func newCnonce() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
