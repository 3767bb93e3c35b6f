package backend

// NullWriter discards every call; used for dry-run layout passes (e.g.
// stretch-iteration trials in internal/paginate) that need a Writer but
// must not produce output.
type NullWriter struct{}

func (NullWriter) StartBar(bar, stave int)                                     {}
func (NullWriter) Stave(x, y, xend float64, lines int)                         {}
func (NullWriter) Barline(x, yTop, yBottom float64, typ BarlineType, magn float64) {}
func (NullWriter) Brace(x, yTop, yBottom, magn float64)                        {}
func (NullWriter) Bracket(x, yTop, yBottom, magn float64)                      {}
func (NullWriter) Beam(x0, x1 float64, level int, levelChange float64)         {}
func (NullWriter) Slur(x0, y0, x1, y1 float64, flags SlurFlags, centreOutAdjust float64) {}
func (NullWriter) Line(x0, y0, x1, y1, thickness float64, flags LineFlags)     {}
func (NullWriter) Lines(xs, ys []float64, thickness float64)                  {}
func (NullWriter) Path(xs, ys []float64, ops []PathOp, thickness float64)      {}
func (NullWriter) AbsPath(xs, ys []float64, ops []PathOp, thickness float64)   {}
func (NullWriter) MusChar(x, y float64, virtualID int, pointsize float64)      {}
func (NullWriter) MusString(virtualIDs []int, pointsize, x, y float64)        {}
func (NullWriter) String(s string, fontID uint8, x, y *float64, update bool)   {}
func (NullWriter) SetColour(rgb RGB)                                           {}
func (NullWriter) SetGray(g float64)                                           {}
func (NullWriter) GetColour() RGB                                              { return RGB{} }
func (NullWriter) SetDash(on, off float64)                                     {}
func (NullWriter) SetCapAndJoin(cj CapJoin)                                    {}
func (NullWriter) Translate(x, y float64)                                      {}
func (NullWriter) Rotate(radians float64)                                      {}
func (NullWriter) Gsave()                                                     {}
func (NullWriter) Grestore()                                                  {}
