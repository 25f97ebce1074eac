package gtfs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/transit-query/gtfs"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "00:00:00", want: 0},
		{in: "08:05:30", want: 8*3600 + 5*60 + 30},
		{in: "8:05:30", want: 8*3600 + 5*60 + 30},
		{in: "25:10:00", want: 25*3600 + 10*60},
		{in: "99:59:59", want: gtfs.MaxClockSecs},
		{in: "100:00:00", wantErr: true},
		{in: "007:00:00", wantErr: true},
		{in: " 07:00:00 ", want: 7 * 3600},
		{in: "", wantErr: true},
		{in: "08:05", wantErr: true},
		{in: "08:60:00", wantErr: true},
		{in: "08:00:61", wantErr: true},
		{in: "08:5:00", wantErr: true},
		{in: "-1:00:00", wantErr: true},
		{in: "aa:bb:cc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := gtfs.ParseClock(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatAndNormalizeClock(t *testing.T) {
	assert.Equal(t, "00:00:00", gtfs.FormatClock(0))
	assert.Equal(t, "00:00:00", gtfs.FormatClock(-5))
	assert.Equal(t, "26:01:01", gtfs.FormatClock(26*3600+61))
	assert.Equal(t, "99:59:59", gtfs.FormatClock(100*3600))

	c, err := gtfs.NormalizeClock("7:04:09")
	require.NoError(t, err)
	assert.Equal(t, "07:04:09", c)
}

func TestAddMinutes_DoesNotWrap(t *testing.T) {
	c, err := gtfs.AddMinutes("23:50:00", 30)
	require.NoError(t, err)
	assert.Equal(t, "24:20:00", c)

	c, err = gtfs.AddMinutes("08:05:00", 30)
	require.NoError(t, err)
	assert.Equal(t, "08:35:00", c)

	c, err = gtfs.AddMinutes("99:00:00", 120)
	require.NoError(t, err)
	assert.Equal(t, "99:59:59", c)
	assert.Less(t, "98:00:00", c)

	_, err = gtfs.AddMinutes("noon", 5)
	assert.Error(t, err)
}
