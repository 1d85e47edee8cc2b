package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrappedErrorKeepsCode(t *testing.T) {
	base := NewError(http.StatusConflict, "busy")
	wrapped := fmt.Errorf("%w: device 0", base)

	if !errors.Is(wrapped, base) {
		t.Fatal("errors.Is should see through wrapping")
	}
	respErr, ok := As(wrapped)
	if !ok || respErr.Code != http.StatusConflict || respErr.Error() != "busy" {
		t.Fatalf("unexpected As result %v %v", respErr, ok)
	}
	if errors.Is(wrapped, NewError(http.StatusConflict, "other")) {
		t.Fatal("different message must not match")
	}
	if _, ok := As(errors.New("plain")); ok {
		t.Fatal("plain error is not a response error")
	}
}
