package handler_test

import (
	"fmt"
	"strconv"
)

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func sprintf(format string, args ...any) string { return fmt.Sprintf(format, args...) }
