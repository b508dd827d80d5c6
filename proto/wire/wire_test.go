package wire

import (
	"testing"

	"go.viam.com/test"
)

type fakeMessage struct {
	value string
}

func (m *fakeMessage) Marshal() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	var b []byte
	b = AppendString(b, 1, m.value)
	return b, nil
}

func (m *fakeMessage) Unmarshal(b []byte) error {
	return Walk(b, func(f Field) error {
		if f.Num == 1 {
			m.value = String(f)
		}
		return nil
	})
}

func TestCodecRoundTrip(t *testing.T) {
	c := Codec{}
	test.That(t, c.Name(), test.ShouldEqual, "viamwire")

	orig := &fakeMessage{value: "hello"}
	data, err := c.Marshal(orig)
	test.That(t, err, test.ShouldBeNil)

	got := &fakeMessage{}
	test.That(t, c.Unmarshal(data, got), test.ShouldBeNil)
	test.That(t, got.value, test.ShouldEqual, orig.value)
}

func TestCodecRejectsNonWireMessage(t *testing.T) {
	c := Codec{}
	_, err := c.Marshal(42)
	test.That(t, err, test.ShouldNotBeNil)

	err = c.Unmarshal([]byte{}, 42)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestAppendStringSkipsEmpty(t *testing.T) {
	var b []byte
	b = AppendString(b, 1, "")
	test.That(t, len(b), test.ShouldEqual, 0)
}

func TestAppendMessageFieldNilSubmessage(t *testing.T) {
	var nilSub *fakeMessage
	b, err := AppendMessageField(nil, 1, nilSub)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(b), test.ShouldEqual, 0)
}

func TestWalkInvalidTagErrors(t *testing.T) {
	err := Walk([]byte{0xff}, func(Field) error { return nil })
	test.That(t, err, test.ShouldNotBeNil)
}
