package iyzico

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"
)

// IYZWS v2 request authorization: the random key, the request path and the
// raw JSON body are signed with HMAC-SHA256 under the secret key, and the
// result is sent base64-encoded in the Authorization header.
const authSchemeV2 = "IYZWSv2"

func randomKey() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	return fmt.Sprintf("%d%s", time.Now().UnixMilli(), hex.EncodeToString(b))
}

func signRequest(opts Options, randKey, path string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(opts.SecretKey))
	mac.Write([]byte(randKey))
	mac.Write([]byte(path))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	authorization := fmt.Sprintf("apiKey:%s&randomKey:%s&signature:%s", opts.APIKey, randKey, signature)
	return authSchemeV2 + " " + base64.StdEncoding.EncodeToString([]byte(authorization))
}
