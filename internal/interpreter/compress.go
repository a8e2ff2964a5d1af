package interpreter

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Frame magic numbers, little endian. Every payload produced by Cipher starts
// with one, including the payload of empty content.
var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// checkMagic rejects payloads that cannot be a frame of the given kind.
func checkMagic(kind string, payload, magic []byte) error {
	if len(payload) <= len(magic) || !bytes.HasPrefix(payload, magic) {
		return fmt.Errorf("%w; not a %s frame (%d bytes)", ErrCorrupt, kind, len(payload))
	}
	return nil
}

// zstdEncoder and zstdDecoder are shared; both are safe for concurrent use
// through EncodeAll and DecodeAll.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderCRC(true),
		zstd.WithZeroFrames(true),
	)
	if err != nil {
		panic("interpreter: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("interpreter: zstd decoder initialization failed: " + err.Error())
	}
}

// Zstd compresses content into zstd frames with a content checksum.
type Zstd struct{}

// Name returns "zstd".
func (Zstd) Name() string { return KindZstd }

// Cipher compresses plaintext. Empty plaintext still yields a frame.
func (Zstd) Cipher(plaintext []byte) ([]byte, error) {
	return zstdEncoder.EncodeAll(plaintext, nil), nil
}

// Decipher decompresses a zstd frame.
func (Zstd) Decipher(ciphertext []byte) ([]byte, error) {
	if err := checkMagic(KindZstd, ciphertext, zstdMagic); err != nil {
		return nil, err
	}
	out, err := zstdDecoder.DecodeAll(ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w; zstd decompress failed; %w", ErrCorrupt, err)
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}

// LZ4 compresses content into an LZ4 frame with block and content checksums.
type LZ4 struct{}

// Name returns "lz4".
func (LZ4) Name() string { return KindLZ4 }

// Cipher compresses plaintext.
func (LZ4) Cipher(plaintext []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if err := w.Apply(lz4.ChecksumOption(true), lz4.BlockChecksumOption(true)); err != nil {
		return nil, fmt.Errorf("failed to configure lz4 writer; %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("lz4 compress failed; %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compress failed; %w", err)
	}
	return buf.Bytes(), nil
}

// Decipher decompresses an LZ4 frame.
func (LZ4) Decipher(ciphertext []byte) ([]byte, error) {
	if err := checkMagic(KindLZ4, ciphertext, lz4Magic); err != nil {
		return nil, err
	}
	r := lz4.NewReader(bytes.NewReader(ciphertext))
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w; lz4 decompress failed; %w", ErrCorrupt, err)
	}
	return out, nil
}
