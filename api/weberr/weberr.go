package weberr

import "errors"

type Opt func(error) error

func Wrap(err error, opts ...Opt) error {
	for _, opt := range opts {
		err = opt(err)
	}
	return err
}

func WithResponse(body any, status int) Opt {
	return func(err error) error {
		return &responseError{error: err, body: body, status: status}
	}
}

func WithFields(fields map[string]any) Opt {
	return func(err error) error {
		return &fieldsError{error: err, fields: fields}
	}
}

func Response(err error) (body any, status int, ok bool) {
	var re *responseError
	if !errors.As(err, &re) {
		return nil, 0, false
	}
	return re.body, re.status, true
}

// Fields merges every set of log fields in err's chain. Outer keys shadow inner ones.
func Fields(err error) (map[string]any, bool) {
	var merged map[string]any
	for err != nil {
		if fe, ok := err.(*fieldsError); ok {
			if merged == nil {
				merged = make(map[string]any, len(fe.fields))
			}
			for k, v := range fe.fields {
				if _, seen := merged[k]; !seen {
					merged[k] = v
				}
			}
		}
		err = errors.Unwrap(err)
	}
	return merged, merged != nil
}

type responseError struct {
	error
	body   any
	status int
}

func (e *responseError) Unwrap() error { return e.error }

type fieldsError struct {
	error
	fields map[string]any
}

func (e *fieldsError) Unwrap() error { return e.error }
