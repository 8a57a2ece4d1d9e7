// Package bitfield packs and unpacks struct fields into a single integer,
// driven by "bitfield" struct tags naming each field's bit width. A
// simplified relative of golang.org/x/text/internal/gen/bitfield,
// retargeted here at page-table-entry flag words.
package bitfield

import (
	"fmt"
	"reflect"
)

// Config determines settings for packing and generation.
type Config struct {
	// NumBits fixes the maximum allowed bits for the integer representation.
	NumBits uint
}

type fieldSpec struct {
	index int
	bits  uint
}

// tagFields returns, in declaration order, every field of v's type carrying
// a non-empty "bitfield" struct tag, along with its declared bit width.
func tagFields(t reflect.Type) ([]fieldSpec, error) {
	specs := make([]fieldSpec, 0, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("bitfield")
		if tag == "" {
			continue
		}

		var bits uint
		if _, err := fmt.Sscanf(tag, ",%d", &bits); err != nil {
			return nil, fmt.Errorf("bitfield: invalid tag %q on field %s", tag, t.Field(i).Name)
		}
		if bits == 0 {
			continue
		}

		specs = append(specs, fieldSpec{index: i, bits: bits})
	}

	return specs, nil
}

// Pack packs the tagged fields of x into an integer, in field declaration
// order, least-significant field first.
func Pack(x interface{}, c *Config) (uint64, error) {
	if c == nil {
		c = &Config{NumBits: 64}
	}

	v := reflect.ValueOf(x)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return 0, fmt.Errorf("bitfield: Pack expected struct, got %v", v.Kind())
	}

	specs, err := tagFields(v.Type())
	if err != nil {
		return 0, err
	}

	var packed uint64
	var bitOffset uint

	for _, spec := range specs {
		field := v.Field(spec.index)

		var fieldBits uint64
		switch field.Kind() {
		case reflect.Bool:
			if field.Bool() {
				fieldBits = 1
			}
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			fieldBits = field.Uint()
		default:
			return 0, fmt.Errorf("bitfield: Pack unsupported field kind %v", field.Kind())
		}

		maxValue := uint64(1)<<spec.bits - 1
		if fieldBits > maxValue {
			return 0, fmt.Errorf("bitfield: value %d exceeds %d bits for field %s",
				fieldBits, spec.bits, v.Type().Field(spec.index).Name)
		}

		packed |= fieldBits << bitOffset
		bitOffset += spec.bits
	}

	if c.NumBits > 0 && bitOffset > c.NumBits {
		return 0, fmt.Errorf("bitfield: total bits %d exceeds NumBits %d", bitOffset, c.NumBits)
	}

	return packed, nil
}

// Unpack is the inverse of Pack: it distributes packed's bits, in field
// declaration order, back into the tagged fields of out (a pointer to a
// struct).
func Unpack(packed uint64, out interface{}, c *Config) error {
	if c == nil {
		c = &Config{NumBits: 64}
	}

	v := reflect.ValueOf(out)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bitfield: Unpack expected pointer to struct, got %v", v.Kind())
	}
	v = v.Elem()

	specs, err := tagFields(v.Type())
	if err != nil {
		return err
	}

	var bitOffset uint

	for _, spec := range specs {
		mask := uint64(1)<<spec.bits - 1
		fieldBits := (packed >> bitOffset) & mask
		field := v.Field(spec.index)

		switch field.Kind() {
		case reflect.Bool:
			field.SetBool(fieldBits != 0)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			field.SetUint(fieldBits)
		default:
			return fmt.Errorf("bitfield: Unpack unsupported field kind %v", field.Kind())
		}

		bitOffset += spec.bits
	}

	return nil
}
