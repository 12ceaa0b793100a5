//go:build ignore

package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
)

const (
	toLower = 'a' - 'A'
)

func main() {
	toLowerTable := func() [256]byte {
		var a [256]byte
		for i := 0; i < 256; i++ {
			c := byte(i)
			if c >= 'A' && c <= 'Z' {
				c += toLower
			}
			a[i] = c
		}
		return a
	}()

	tokenCharTable := func() [256]byte {
		// Defined by RFC 7230 section 3.2.6:
		//
		//	tchar = "!" / "#" / "$" / "%" / "&" / "'" / "*" / "+" / "-" / "." /
		//	        "^" / "_" / "`" / "|" / "~" / DIGIT / ALPHA
		//	token = 1*tchar
		var a [256]byte
		for c := 0; c < 128; c++ {
			if (c >= '0' && c <= '9') ||
				(c >= 'a' && c <= 'z') ||
				(c >= 'A' && c <= 'Z') ||
				c == '!' || c == '#' || c == '$' || c == '%' || c == '&' ||
				c == '\'' || c == '*' || c == '+' || c == '-' || c == '.' ||
				c == '^' || c == '_' || c == '`' || c == '|' || c == '~' {
				a[c] = 1
			}
		}
		return a
	}()

	delimiterTable := func() [256]byte {
		// Defined by RFC 7230 section 3.2.6:
		//
		//	delimiters = DQUOTE and "(),/:;<=>?@[\]{}"
		var a [256]byte
		for _, c := range "\"(),/:;<=>?@[\\]{}" {
			a[c] = 1
		}
		return a
	}()

	w := bytes.NewBufferString(pre)
	fmt.Fprintf(w, "const toLowerTable = %q\n", toLowerTable)
	fmt.Fprintf(w, "const tokenCharTable = %q\n", tokenCharTable)
	fmt.Fprintf(w, "const delimiterTable = %q\n", delimiterTable)

	if err := os.WriteFile("bytesconv_table.go", w.Bytes(), 0o660); err != nil {
		log.Fatal(err)
	}
}

const pre = `package forwarded

// Code generated by go run bytesconv_table_gen.go; DO NOT EDIT.
// See bytesconv_table_gen.go for more information about these tables.

`
