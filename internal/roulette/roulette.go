// Package roulette holds the pure number properties of a European wheel.
package roulette

import "errors"

const MaxNumber = 36

var ErrInvalidNumber = errors.New("invalid_number")

type Color string

const (
	ColorRed   Color = "red"
	ColorBlack Color = "black"
	ColorGreen Color = "green"
)

type Parity string

const (
	ParityOdd  Parity = "odd"
	ParityEven Parity = "even"
	ParityNone Parity = "none"
)

var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true,
	14: true, 16: true, 18: true, 19: true, 21: true, 23: true,
	25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

func Validate(n int) error {
	if n < 0 || n > MaxNumber {
		return ErrInvalidNumber
	}
	return nil
}

func ColorOf(n int) (Color, error) {
	if err := Validate(n); err != nil {
		return "", err
	}
	if n == 0 {
		return ColorGreen, nil
	}
	if redNumbers[n] {
		return ColorRed, nil
	}
	return ColorBlack, nil
}

func ParityOf(n int) (Parity, error) {
	if err := Validate(n); err != nil {
		return "", err
	}
	if n == 0 {
		return ParityNone, nil
	}
	if n%2 == 0 {
		return ParityEven, nil
	}
	return ParityOdd, nil
}

// Describe returns both wheel properties for n in one call.
func Describe(n int) (Color, Parity, error) {
	color, err := ColorOf(n)
	if err != nil {
		return "", "", err
	}
	parity, _ := ParityOf(n)
	return color, parity, nil
}
