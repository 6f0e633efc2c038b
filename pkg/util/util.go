package util

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID 生成一个标准的 UUID (v4)
func GenerateUUID() string {
	return uuid.New().String()
}

// GenerateShortUUID 生成一个不带中划线的短 UUID
func GenerateShortUUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// GenerateID 生成带业务前缀的短 ID，例如 GenerateID("Q") -> "Q3f2c..."
func GenerateID(prefix string) string {
	short := GenerateShortUUID()
	if len(short) > 12 {
		short = short[:12]
	}
	return fmt.Sprintf("%s%s", prefix, short)
}
