package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

func GenerateCode(n int) (string, error) {
	byt := make([]byte, n)
	if _, err := rand.Read(byt); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(byt)), nil
}

// GenerateReference returns a checkout reference such as NM-250614-9F3A1C2B.
// The payment provider echoes it back, and it becomes the ticket's key.
func GenerateReference(prefix string, now time.Time) (string, error) {
	code, err := GenerateCode(4)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("060102"), code), nil
}
