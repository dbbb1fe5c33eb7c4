// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
)

// Random returns a variable number of bytes of random data.
func Random(n int) ([]byte, error) {
	k := make([]byte, n)
	_, err := io.ReadFull(rand.Reader, k)
	if err != nil {
		return nil, err
	}

	return k, nil
}

// RandomUint64 returns a random unsigned 64 bit integer.
func RandomUint64() (uint64, error) {
	k, err := Random(8)
	if err != nil {
		return 0xffffffffffffffff, err
	}
	return binary.LittleEndian.Uint64(k), nil
}

// RandomCode returns a uniformly random numeric code of the given number of
// digits, left padded with zeros.
func RandomCode(digits int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
