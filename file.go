package smh

import (
	"io"
	"os"
	"path/filepath"
)

// Compress builds a Huffman code for data and returns the encoded container.
// Empty input yields a container with an empty codebook and no data.
func Compress(data []byte) (Container, error) {
	ft := BuildFrequencyTable(data)
	cb := BuildCodebook(ft)
	s, err := Encode(data, cb)
	if err != nil {
		return Container{}, err
	}
	log.Debugf("encoded %d bytes (%d distinct) into %d bits + %d padding", ft.Total(), ft.Len(), s.NumBits(), s.Padding)
	return NewContainer(s), nil
}

// Decompress decodes the contents of c.
func Decompress(c Container) ([]byte, error) {
	s := c.Stream()
	data, err := Decode(s.Padding, s.Codebook, s.Data)
	if err != nil {
		return nil, err
	}
	log.Debugf("decoded %d bits into %d bytes", s.NumBits(), len(data))
	return data, nil
}

// CompressFile compresses the file at inputPath into a container at
// outputPath.
func CompressFile(inputPath, outputPath string) error {
	data, err := readFile(inputPath)
	if err != nil {
		return err
	}
	c, err := Compress(data)
	if err != nil {
		return err
	}
	if err := WriteContainerFile(outputPath, c); err != nil {
		return err
	}
	log.Infof("compressed %q (%d bytes) to %q", inputPath, len(data), outputPath)
	return nil
}

// DecompressFile decompresses the container at inputPath into outputPath.
func DecompressFile(inputPath, outputPath string) error {
	c, err := ReadContainerFile(inputPath)
	if err != nil {
		return err
	}
	data, err := Decompress(c)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(outputPath, data); err != nil {
		return err
	}
	log.Infof("decompressed %q to %q (%d bytes)", inputPath, outputPath, len(data))
	return nil
}

// ReadFrequencyTable counts the bytes of the file at path.
func ReadFrequencyTable(path string) (FrequencyTable, error) {
	data, err := readFile(path)
	if err != nil {
		return FrequencyTable{}, err
	}
	return BuildFrequencyTable(data), nil
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return data, nil
}

// writeFileAtomic writes data to a temporary file next to path, then renames
// it over path.  The temporary file is removed on failure.
func writeFileAtomic(path string, data []byte) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	f, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	tempPath := f.Name()

	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tempPath)
		}
	}()

	if _, err = f.Write(data); err != nil {
		return &IOError{Op: "write", Path: tempPath, Err: err}
	}
	if err = f.Chmod(0644); err != nil {
		return &IOError{Op: "chmod", Path: tempPath, Err: err}
	}
	if err = f.Sync(); err != nil {
		return &IOError{Op: "sync", Path: tempPath, Err: err}
	}
	if err = f.Close(); err != nil {
		return &IOError{Op: "close", Path: tempPath, Err: err}
	}
	if err = os.Rename(tempPath, path); err != nil {
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
