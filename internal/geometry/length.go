package geometry

import (
	"fmt"
	"math"
	"strconv"
)

// curveSegments is the number of chords used to approximate a cubic Bézier.
const curveSegments = 64

type point struct{ x, y float64 }

func (p point) add(o point) point { return point{p.x + o.x, p.y + o.y} }

func dist(a, b point) float64 { return math.Hypot(b.x-a.x, b.y-a.y) }

// PathLength measures SVG path data made of M, L, H, V, C and Z commands in
// absolute or relative form. Cubic curves are flattened into chords.
func PathLength(d string) (float64, error) {
	sc := &pathScanner{s: d}

	var (
		cur, start point
		total      float64
		cmd        byte
	)

	for {
		if c, ok := sc.command(); ok {
			cmd = c
		} else if sc.done() {
			break
		} else if cmd == 0 || !sc.hasNumber() {
			return 0, fmt.Errorf("unexpected character at offset %d", sc.pos)
		}

		rel := cmd >= 'a' && cmd <= 'z'
		switch cmd {
		case 'M', 'm':
			pt, err := sc.point()
			if err != nil {
				return 0, err
			}
			if rel {
				pt = pt.add(cur)
			}
			cur, start = pt, pt
			// Subsequent pairs after a moveto are implicit linetos.
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
		case 'L', 'l':
			pt, err := sc.point()
			if err != nil {
				return 0, err
			}
			if rel {
				pt = pt.add(cur)
			}
			total += dist(cur, pt)
			cur = pt
		case 'H', 'h':
			x, err := sc.number()
			if err != nil {
				return 0, err
			}
			if rel {
				x += cur.x
			}
			total += math.Abs(x - cur.x)
			cur.x = x
		case 'V', 'v':
			y, err := sc.number()
			if err != nil {
				return 0, err
			}
			if rel {
				y += cur.y
			}
			total += math.Abs(y - cur.y)
			cur.y = y
		case 'C', 'c':
			var pts [3]point
			for i := range pts {
				pt, err := sc.point()
				if err != nil {
					return 0, err
				}
				if rel {
					pt = pt.add(cur)
				}
				pts[i] = pt
			}
			total += cubicLength(cur, pts[0], pts[1], pts[2])
			cur = pts[2]
		case 'Z', 'z':
			total += dist(cur, start)
			cur = start
			cmd = 0
		default:
			return 0, fmt.Errorf("unsupported path command %q", cmd)
		}
	}

	return total, nil
}

func cubicLength(p0, p1, p2, p3 point) float64 {
	var total float64
	prev := p0
	for i := 1; i <= curveSegments; i++ {
		t := float64(i) / curveSegments
		mt := 1 - t
		a := mt * mt * mt
		b := 3 * mt * mt * t
		c := 3 * mt * t * t
		e := t * t * t
		pt := point{
			x: a*p0.x + b*p1.x + c*p2.x + e*p3.x,
			y: a*p0.y + b*p1.y + c*p2.y + e*p3.y,
		}
		total += dist(prev, pt)
		prev = pt
	}
	return total
}

type pathScanner struct {
	s   string
	pos int
}

func (p *pathScanner) skipSeparators() {
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case ' ', ',', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *pathScanner) done() bool {
	p.skipSeparators()
	return p.pos >= len(p.s)
}

func (p *pathScanner) command() (byte, bool) {
	p.skipSeparators()
	if p.pos >= len(p.s) {
		return 0, false
	}
	switch c := p.s[p.pos]; c {
	case 'M', 'm', 'L', 'l', 'H', 'h', 'V', 'v', 'C', 'c', 'Z', 'z':
		p.pos++
		return c, true
	case 'S', 's', 'Q', 'q', 'T', 't', 'A', 'a':
		// Recognised but unsupported; reported by the caller.
		p.pos++
		return c, true
	}
	return 0, false
}

func (p *pathScanner) hasNumber() bool {
	p.skipSeparators()
	if p.pos >= len(p.s) {
		return false
	}
	c := p.s[p.pos]
	return c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9')
}

func (p *pathScanner) number() (float64, error) {
	if !p.hasNumber() {
		return 0, fmt.Errorf("expected number at offset %d", p.pos)
	}
	start := p.pos
	if c := p.s[p.pos]; c == '-' || c == '+' {
		p.pos++
	}
	p.digits()
	if p.pos < len(p.s) && p.s[p.pos] == '.' {
		p.pos++
		p.digits()
	}
	if p.pos < len(p.s) && (p.s[p.pos] == 'e' || p.s[p.pos] == 'E') {
		p.pos++
		if p.pos < len(p.s) && (p.s[p.pos] == '-' || p.s[p.pos] == '+') {
			p.pos++
		}
		p.digits()
	}
	v, err := strconv.ParseFloat(p.s[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q at offset %d", p.s[start:p.pos], start)
	}
	return v, nil
}

func (p *pathScanner) digits() {
	for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
		p.pos++
	}
}

func (p *pathScanner) point() (point, error) {
	x, err := p.number()
	if err != nil {
		return point{}, err
	}
	y, err := p.number()
	if err != nil {
		return point{}, err
	}
	return point{x, y}, nil
}
