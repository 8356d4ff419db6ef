package log

import "sync/atomic"

// swapHandler 包装了另一个可以在运行时以线程安全方式换出的处理程序。
type swapHandler struct {
	handler atomic.Value
}

func (h *swapHandler) Log(r *Record) error {
	return h.Get().Log(r)
}

func (h *swapHandler) Swap(newHandler Handler) {
	h.handler.Store(&newHandler)
}

func (h *swapHandler) Get() Handler {
	p, _ := h.handler.Load().(*Handler)
	if p == nil {
		return discardHandler()
	}
	return *p
}
