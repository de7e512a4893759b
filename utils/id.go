package utils

import (
	"crypto/rand"
	"errors"
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultIDLength là độ dài id mặc định (16 ký tự ~ 95 bit entropy)
const DefaultIDLength = 16

// GenerateRandomID tạo một ID ngẫu nhiên gồm length ký tự chữ và số
func GenerateRandomID(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("id length must be positive")
	}

	id := make([]byte, 0, length)
	buf := make([]byte, length*2)
	for len(id) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			// Bỏ các byte >= 248 để phân phối đều trên 62 ký tự
			if b >= 248 {
				continue
			}
			id = append(id, idAlphabet[int(b)%len(idAlphabet)])
			if len(id) == length {
				break
			}
		}
	}
	return string(id), nil
}
