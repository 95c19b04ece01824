package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var errNotTerminal = errors.New("stdin is not a terminal")

// promptSecret prints label and reads a secret. Terminals get a no-echo
// prompt; pipes and other readers are read line by line.
func promptSecret(in io.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	if file, ok := in.(*os.File); ok {
		secret, err := readSecretNoEcho(file)
		if err == nil {
			fmt.Fprintln(out)
			return secret, nil
		}
		if !errors.Is(err, errNotTerminal) {
			return "", err
		}
	}
	return readLine(in)
}

func readLine(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
