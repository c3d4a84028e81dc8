package logger

// Ctx holds the structured key/value pairs attached to a log entry.
type Ctx map[string]interface{}

// WithCtx merges newCtx on top of c and returns the result. Neither of the
// two maps is modified.
func (c Ctx) WithCtx(newCtx Ctx) Ctx {
	switch {
	case c == nil:
		return newCtx
	case newCtx == nil:
		return c
	}

	ret := make(Ctx, len(c)+len(newCtx))

	for k, v := range c {
		ret[k] = v
	}

	for k, v := range newCtx {
		ret[k] = v
	}

	return ret
}
