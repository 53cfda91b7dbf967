package user

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

const (
	passwordSaltBytes = 16
	passwordIters     = 100_000
)

func GenerateSaltHex() (string, error) {
	b := make([]byte, passwordSaltBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func HashPassword(password, saltHex string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is empty")
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil || len(salt) == 0 {
		return "", fmt.Errorf("invalid salt")
	}
	return hex.EncodeToString(stretch([]byte(password), salt)), nil
}

// stretch 多轮 SHA256(salt || password || prev)。
// 说明：生产建议使用 bcrypt/argon2（需要额外依赖与环境支持）。
func stretch(password, salt []byte) []byte {
	var prev [sha256.Size]byte
	for i := 0; i < passwordIters; i++ {
		h := sha256.New()
		_, _ = h.Write(salt)
		_, _ = h.Write(password)
		_, _ = h.Write(prev[:])
		copy(prev[:], h.Sum(nil))
	}
	out := make([]byte, sha256.Size)
	copy(out, prev[:])
	return out
}

// VerifyPassword 恒定时间比较，登录失败不泄露差异位置。
func VerifyPassword(password, saltHex, wantHashHex string) bool {
	got, err := HashPassword(password, saltHex)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(wantHashHex)) == 1
}
