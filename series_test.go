package stats

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeries(Te *testing.T) {
	S := newTestStats(Te)
	mol := linearDynamic(Te, 3, 7)
	p, err := S.Create("s", "series resid(1:3)")
	require.NoError(Te, err)
	p.Unit = "Å"
	p.Periodic = true
	q, err := S.Create("t", "series atom(1)")
	require.NoError(Te, err)
	run(Te, S, mol, Range{})
	q.Instances[0].Data[2] = 1.0 / 3.0

	var buf bytes.Buffer
	require.NoError(Te, WriteSeries(&buf, S.Properties()))
	series, err := ReadSeries(&buf)
	require.NoError(Te, err)
	require.Len(Te, series, 2)
	assert.Equal(Te, "s", series[0].Name)
	assert.Equal(Te, "series resid(1:3)", series[0].Args)
	assert.Equal(Te, "Å", series[0].Unit)
	assert.True(Te, series[0].Periodic)
	require.Len(Te, series[0].Instances, 3)
	for i, inst := range p.Instances {
		assert.Equal(Te, inst.Data, series[0].Instances[i])
	}
	assert.Equal(Te, "", series[1].Unit)
	assert.False(Te, series[1].Periodic)
	assert.Equal(Te, 1.0/3.0, series[1].Instances[0][2])

	name := filepath.Join(Te.TempDir(), "series.zst")
	require.NoError(Te, WriteSeriesFile(name, S.Properties()[:1]))
	f, err := os.Open(name)
	require.NoError(Te, err)
	defer f.Close()
	series, err = ReadSeries(f)
	require.NoError(Te, err)
	assert.Len(Te, series, 1)
}

func TestSeriesErrors(Te *testing.T) {
	_, err := ReadSeries(bytes.NewReader([]byte("not compressed at all")))
	assert.Error(Te, err)

	S := newTestStats(Te)
	mol := linearDynamic(Te, 1, 4)
	_, err = S.Create("s", "series atom(1)")
	require.NoError(Te, err)
	run(Te, S, mol, Range{})
	var buf bytes.Buffer
	require.NoError(Te, WriteSeries(&buf, S.Properties()))
	truncated := buf.Bytes()[:buf.Len()/2]
	_, err = ReadSeries(bytes.NewReader(truncated))
	assert.Error(Te, err)

	//Sizes in the headers are not trusted.
	for _, text := range []string{
		"** 9000000000000000000\n",
		"** 1\nP x 9000000000000000000 1 0\nA \"x\"\nU \"\"\n1\n",
		"** 1\nP x 1 9000000000000000000 0\nA \"x\"\nU \"\"\n1 2\n",
		"** 1\nP x 1 1 0\nA x\nU \"\"\n1\n",
	} {
		_, err = ReadSeries(bytes.NewReader(compress(Te, text)))
		assert.ErrorIs(Te, err, ErrFormat, text)
	}
}

func compress(Te *testing.T, text string) []byte {
	var buf bytes.Buffer
	z, err := zstd.NewWriter(&buf)
	require.NoError(Te, err)
	_, err = z.Write([]byte(text))
	require.NoError(Te, err)
	require.NoError(Te, z.Close())
	return buf.Bytes()
}

func TestSeriesMultilineArgs(Te *testing.T) {
	S := newTestStats(Te)
	mol := linearDynamic(Te, 1, 3)
	p, err := S.Create("nl", "series\natom(1)")
	require.NoError(Te, err)
	p.Unit = "a\nb"
	run(Te, S, mol, Range{})
	var buf bytes.Buffer
	require.NoError(Te, WriteSeries(&buf, S.Properties()))
	series, err := ReadSeries(&buf)
	require.NoError(Te, err)
	require.Len(Te, series, 1)
	assert.Equal(Te, "series\natom(1)", series[0].Args)
	assert.Equal(Te, "a\nb", series[0].Unit)
	assert.Equal(Te, p.Instances[0].Data, series[0].Instances[0])
}
