package lox_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"pricetrack/pkg/lox"
)

func TestMapErr(t *testing.T) {
	rq := require.New(t)

	out, err := lox.MapErr([]string{"1", "2"}, strconv.Atoi)
	rq.NoError(err)
	rq.Equal([]int{1, 2}, out)

	_, err = lox.MapErr([]string{"1", "x"}, strconv.Atoi)
	rq.Error(err)

	var numErr *strconv.NumError
	rq.True(errors.As(err, &numErr))
}

func TestMap(t *testing.T) {
	rq := require.New(t)

	rq.Equal([]int{2, 4}, lox.Map([]int{1, 2}, func(i int) int { return i * 2 }))
	rq.Empty(lox.Map(nil, strconv.Itoa))
}
