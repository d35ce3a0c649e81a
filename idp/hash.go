package idp

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// argon2id parameters for a development provider. Deliberately on the
// light side; this registry never holds production credentials.
const (
	hashMemoryKB    uint32 = 16 * 1024
	hashTime        uint32 = 2
	hashParallelism uint8  = 1
	hashSaltLength         = 16
	hashKeyLength   uint32 = 32
)

func hashSecret(secret string) (string, error) {
	if secret == "" {
		return "", errors.New("idp: empty secret")
	}

	salt := make([]byte, hashSaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(secret), salt, hashTime, hashMemoryKB, hashParallelism, hashKeyLength)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		hashMemoryKB,
		hashTime,
		hashParallelism,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key),
	), nil
}

// verifySecret checks secret against a PHC-formatted argon2id hash in
// constant time. The stored parameters are honored so hashes written
// with older cost settings still verify.
func verifySecret(secret, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return false, errors.New("idp: malformed secret hash")
	}

	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if err != nil || version != argon2.Version {
		return false, errors.New("idp: unsupported argon2 version")
	}

	var memory, timeCost uint32
	var parallelism uint8
	for _, pair := range strings.Split(parts[3], ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return false, errors.New("idp: malformed hash parameters")
		}
		v, err := strconv.ParseUint(kv[1], 10, 32)
		if err != nil {
			return false, errors.New("idp: malformed hash parameters")
		}
		switch kv[0] {
		case "m":
			memory = uint32(v)
		case "t":
			timeCost = uint32(v)
		case "p":
			parallelism = uint8(v)
		default:
			return false, errors.New("idp: unknown hash parameter")
		}
	}
	if memory == 0 || timeCost == 0 || parallelism == 0 {
		return false, errors.New("idp: missing hash parameters")
	}

	salt, err := base64.StdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return false, errors.New("idp: malformed salt")
	}
	want, err := base64.StdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false, errors.New("idp: malformed key")
	}

	got := argon2.IDKey([]byte(secret), salt, timeCost, memory, parallelism, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
