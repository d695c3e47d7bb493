package codec

import (
	"errors"

	"github.com/fxamacker/cbor/v2"
)

// ErrTooLarge is returned for input longer than MaxMessageSize.
var ErrTooLarge = errors.New("codec: message too large")

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

// MaxMessageSize bounds a single decoded control message.
const MaxMessageSize = 1 << 20

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		MaxArrayElements: 4096,
		MaxMapPairs:      4096,
		MaxNestedLevels:  16,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	if len(data) > MaxMessageSize {
		return ErrTooLarge
	}
	return decMode.Unmarshal(data, v)
}
