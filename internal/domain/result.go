package domain

import "errors"

// ErrorResult converts err into the payload returned across the tool
// boundary: error, kind, message and, when the error carries metadata,
// details. Errors without a code are reported as INTERNAL.
func ErrorResult(err error) map[string]any {
	if err == nil {
		return nil
	}
	code, ok := CodeFrom(err)
	if !ok {
		code = CodeInternal
	}
	out := map[string]any{
		"error":   true,
		"kind":    string(code),
		"message": err.Error(),
	}

	var coded *Error
	if errors.As(err, &coded) {
		if coded.Message != "" {
			out["message"] = coded.Message
		}
		if len(coded.Meta) > 0 {
			details := make(map[string]any, len(coded.Meta))
			for k, v := range coded.Meta {
				details[k] = v
			}
			out["details"] = details
		}
	}
	return out
}

// IsErrorResult reports whether a tool result is an error payload.
func IsErrorResult(result map[string]any) bool {
	flag, _ := result["error"].(bool)
	return flag
}

// ErrorKind returns the kind of an error payload, or "" for success results.
func ErrorKind(result map[string]any) ErrorCode {
	if !IsErrorResult(result) {
		return ""
	}
	kind, _ := result["kind"].(string)
	return ErrorCode(kind)
}
