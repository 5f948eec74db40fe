package pkg

import (
	cryptoRand "crypto/rand"
	"math/big"
	"strings"
)

// ResetCodeLength 密码重置验证码位数
const ResetCodeLength = 6

func RandDigits(n int) (string, error) {
	var b strings.Builder
	for i := 0; i < n; i++ {
		x, err := cryptoRand.Int(cryptoRand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + x.Int64()))
	}
	return b.String(), nil
}
