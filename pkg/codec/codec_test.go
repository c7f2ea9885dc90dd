package codec

import (
	"errors"
	"reflect"
	"testing"
)

type profile struct {
	Name  string            `codec:"name" json:"name"`
	Age   int               `codec:"age" json:"age"`
	Tags  []string          `codec:"tags" json:"tags"`
	Attrs map[string]string `codec:"attrs" json:"attrs"`
}

func TestRoundTrip(t *testing.T) {
	in := profile{
		Name:  "ada",
		Age:   36,
		Tags:  []string{"math", "engines"},
		Attrs: map[string]string{"lang": "en"},
	}

	for _, c := range []Codec{MsgPack(), JSON(), Gob()} {
		t.Run(c.Name(), func(t *testing.T) {
			data, err := c.Marshal(in)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}

			var out profile
			if err := c.Unmarshal(data, &out); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if !reflect.DeepEqual(in, out) {
				t.Errorf("round trip = %+v, want %+v", out, in)
			}
		})
	}
}

func TestUnmarshal_Garbage(t *testing.T) {
	garbage := []byte{0xc1, 0xff, 0x00, 0x13}

	for _, c := range []Codec{MsgPack(), JSON(), Gob()} {
		t.Run(c.Name(), func(t *testing.T) {
			var out profile
			if err := c.Unmarshal(garbage, &out); err == nil {
				t.Error("Unmarshal(garbage) error = nil, want an error")
			}
		})
	}
}

func TestUnmarshal_Empty(t *testing.T) {
	for _, c := range []Codec{MsgPack(), JSON(), Gob()} {
		t.Run(c.Name(), func(t *testing.T) {
			var out profile
			if err := c.Unmarshal(nil, &out); err == nil {
				t.Error("Unmarshal(nil) error = nil, want an error")
			}
		})
	}
}

func TestByName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "msgpack", false},
		{"MsgPack", "msgpack", false},
		{"json", "json", false},
		{"gob", "gob", false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ByName(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownCodec) {
					t.Errorf("ByName(%q) error = %v, want ErrUnknownCodec", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ByName(%q) error = %v", tt.in, err)
			}
			if c.Name() != tt.want {
				t.Errorf("ByName(%q).Name() = %q, want %q", tt.in, c.Name(), tt.want)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	if Default().Name() != "msgpack" {
		t.Errorf("Default().Name() = %q, want msgpack", Default().Name())
	}
}
