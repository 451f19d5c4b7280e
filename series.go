/*
 * series.go, part of mdstats.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package stats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

/*The series format is a zstd-compressed text file:

** <number of properties>
P <name> <instances> <frames> <periodic: 0|1>
A <argument string, Go-quoted>
U <unit, Go-quoted>
<one line per instance, with the values for each frame separated by spaces>
...

*/

//Series is the data of one property as read from a series file.
type Series struct {
	Name      string
	Args      string
	Unit      string
	Periodic  bool
	Instances [][]float64
}

//WriteSeries writes the instance data of props to w, zstd-compressed.
func WriteSeries(w io.Writer, props []*Property) error {
	z, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return newError(err, "WriteSeries", "can't start compressor")
	}
	bw := bufio.NewWriter(z)
	fmt.Fprintf(bw, "** %d\n", len(props))
	buf := make([]byte, 0, 32)
	for _, p := range props {
		periodic := 0
		if p.Periodic {
			periodic = 1
		}
		fmt.Fprintf(bw, "P %s %d %d %d\n", p.name, len(p.Instances), p.NumFrames(), periodic)
		fmt.Fprintf(bw, "A %s\n", strconv.Quote(p.args))
		fmt.Fprintf(bw, "U %s\n", strconv.Quote(p.Unit))
		for _, inst := range p.Instances {
			for j, v := range inst.Data {
				if j > 0 {
					bw.WriteByte(' ')
				}
				buf = strconv.AppendFloat(buf[:0], v, 'g', -1, 64)
				bw.Write(buf)
			}
			bw.WriteByte('\n')
		}
	}
	if err := bw.Flush(); err != nil {
		z.Close()
		return newError(err, "WriteSeries", "can't write series")
	}
	if err := z.Close(); err != nil {
		return newError(err, "WriteSeries", "can't finish compressed stream")
	}
	return nil
}

//WriteSeriesFile writes the series of props to the file name.
func WriteSeriesFile(name string, props []*Property) error {
	f, err := os.Create(name)
	if err != nil {
		return newError(err, "WriteSeriesFile", "can't create %s", name)
	}
	if err := WriteSeries(f, props); err != nil {
		f.Close()
		return errDecorate(err, "WriteSeriesFile")
	}
	return f.Close()
}

//ReadSeries reads series written by WriteSeries.
func ReadSeries(r io.Reader) ([]Series, error) {
	z, err := zstd.NewReader(r)
	if err != nil {
		return nil, newError(err, "ReadSeries", "can't start decompressor")
	}
	defer z.Close()
	sc := bufio.NewScanner(z)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	line := 0
	next := func() (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", newError(err, "ReadSeries", "reading line %d", line+1)
			}
			return "", newError(ErrFormat, "ReadSeries", "unexpected end of data at line %d", line+1)
		}
		line++
		return sc.Text(), nil
	}
	bad := func(format string, a ...interface{}) error {
		return newError(ErrFormat, "ReadSeries", "line %d: %s", line, fmt.Sprintf(format, a...))
	}
	l, err := next()
	if err != nil {
		return nil, err
	}
	var nprops int
	if _, err := fmt.Sscanf(l, "** %d", &nprops); err != nil || nprops < 0 {
		return nil, bad("malformed header %q", l)
	}
	var ret []Series //nprops is not trusted for allocation
	for i := 0; i < nprops; i++ {
		var s Series
		var ninst, nframes, periodic int
		if l, err = next(); err != nil {
			return nil, err
		}
		if _, err := fmt.Sscanf(l, "P %s %d %d %d", &s.Name, &ninst, &nframes, &periodic); err != nil || ninst < 0 || nframes < 0 {
			return nil, bad("malformed property header %q", l)
		}
		s.Periodic = periodic != 0
		if l, err = next(); err != nil {
			return nil, err
		}
		if s.Args, err = quoted(l, "A "); err != nil {
			return nil, bad("expected arguments, got %q", l)
		}
		if l, err = next(); err != nil {
			return nil, err
		}
		if s.Unit, err = quoted(l, "U "); err != nil {
			return nil, bad("expected unit, got %q", l)
		}
		for j := 0; j < ninst; j++ {
			if l, err = next(); err != nil {
				return nil, err
			}
			fields := strings.Fields(l)
			if len(fields) != nframes {
				return nil, bad("%d values for %d frames", len(fields), nframes)
			}
			data := make([]float64, len(fields))
			for k, f := range fields {
				if data[k], err = strconv.ParseFloat(f, 64); err != nil {
					return nil, bad("invalid value %q", f)
				}
			}
			s.Instances = append(s.Instances, data)
		}
		ret = append(ret, s)
	}
	return ret, nil
}

//quoted returns the unquoted text after prefix in l.
func quoted(l, prefix string) (string, error) {
	if !strings.HasPrefix(l, prefix) {
		return "", ErrFormat
	}
	return strconv.Unquote(l[len(prefix):])
}
