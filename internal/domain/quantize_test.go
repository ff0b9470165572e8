package domain

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

func TestQuantizeMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10.125", "10.12"},
		{"10.135", "10.14"},
		{"10.126", "10.13"},
		{"-10.125", "-10.12"},
		{"0.005", "0"},
		{"0.015", "0.02"},
		{"100", "100"},
		{"99.999", "100"},
	}

	for _, tt := range tests {
		got := QuantizeMoney(decimal.RequireFromString(tt.in))
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("QuantizeMoney(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestQuantizeRate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.1234", "1.1234"},
		{"1.0000005", "1.000000"},
		{"1.0000015", "1.000002"},
		{"0.1234567", "0.123457"},
	}

	for _, tt := range tests {
		got := QuantizeRate(decimal.RequireFromString(tt.in))
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("QuantizeRate(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestQuantizeIsIdempotent(t *testing.T) {
	values := []string{"10.125", "-3.14159265", "0", "123456789.987654321", "0.0000005", "-0.005"}

	for _, v := range values {
		x := decimal.RequireFromString(v)

		once := QuantizeMoney(x)
		if twice := QuantizeMoney(once); !twice.Equal(once) {
			t.Errorf("QuantizeMoney not idempotent for %s: %s != %s", v, twice, once)
		}

		onceRate := QuantizeRate(x)
		if twiceRate := QuantizeRate(onceRate); !twiceRate.Equal(onceRate) {
			t.Errorf("QuantizeRate not idempotent for %s: %s != %s", v, twiceRate, onceRate)
		}
	}
}

func TestQuantizeConcurrentCallsDoNotInterfere(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan string, 200)

	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if got := FormatMoney(decimal.RequireFromString("10.125")); got != "10.12" {
				errs <- "money: " + got
			}
		}()
		go func() {
			defer wg.Done()
			if got := FormatRate(decimal.RequireFromString("1.1234")); got != "1.123400" {
				errs <- "rate: " + got
			}
		}()
	}

	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

func TestFormat(t *testing.T) {
	if got := FormatMoney(decimal.NewFromInt(5)); got != "5.00" {
		t.Errorf("FormatMoney(5) = %q", got)
	}
	if got := FormatRate(decimal.NewFromInt(1)); got != "1.000000" {
		t.Errorf("FormatRate(1) = %q", got)
	}
	if got := FormatMoney(decimal.RequireFromString("-0.125")); got != "-0.12" {
		t.Errorf("FormatMoney(-0.125) = %q", got)
	}
}
