// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package pattern

import (
	"fmt"
	"strings"
)

// Key identifies one family of regex features. The declaration order is the
// canonical extraction order and matters: earlier keys claim spans first.
type Key int

const (
	ShortDate6 Key = iota
	URL
	Email
	Date
	PhoneKR
	PhoneIntl
	Account
	Number

	numKeys
)

var keyNames = [numKeys]string{
	ShortDate6: "SHORT_DATE_6",
	URL:        "URL",
	Email:      "EMAIL",
	Date:       "DATE",
	PhoneKR:    "PHONE_KR",
	PhoneIntl:  "PHONE_INTL",
	Account:    "ACCOUNT",
	Number:     "NUMBER",
}

// Keys returns all keys in canonical order.
func Keys() []Key {
	keys := make([]Key, 0, numKeys)
	for k := Key(0); k < numKeys; k++ {
		keys = append(keys, k)
	}
	return keys
}

// String returns the upper-case constant name, e.g. "PHONE_KR".
func (k Key) String() string {
	if k < 0 || k >= numKeys {
		return fmt.Sprintf("Key(%d)", int(k))
	}
	return keyNames[k]
}

// KeyName returns the lower-case wire name, e.g. "phone_kr".
func (k Key) KeyName() string {
	return strings.ToLower(k.String())
}

// ParseKey resolves a wire name (case-insensitive) back to a Key.
func ParseKey(name string) (Key, error) {
	for k := Key(0); k < numKeys; k++ {
		if strings.EqualFold(keyNames[k], name) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKey, name)
}
