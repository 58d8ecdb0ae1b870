package pages

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"orderdesk/globals"
	"orderdesk/summary"
)

func (s *Server) receipt(r *http.Request) (summary.Receipt, error) {
	st, err := s.manager.View(r.Context(), globals.SessionID(r.Context()))
	if err != nil {
		return summary.Receipt{}, err
	}
	return s.formatter.Build(st.Order, st.Cart, s.manager.Catalog())
}

// SummaryText serves the plain-text summary the page's copy button copies.
func (s *Server) SummaryText(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rc, err := s.receipt(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(s.formatter.Render(rc)))
}

func (s *Server) ReceiptPDF(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rc, err := s.receipt(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts := s.opts.PDF
	qr, err := summary.QR(s.formatter.Render(rc), s.opts.QRSize)
	if err != nil {
		s.logger.Warn("receipt without qr code", zap.String("order_id", rc.OrderID), zap.Error(err))
	} else {
		opts.QR = qr
	}
	pdf, err := s.formatter.PDF(rc, opts)
	if err != nil {
		s.logger.Error("render pdf", zap.Error(err))
		http.Error(w, "Failed to render receipt", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+rc.OrderID+`.pdf"`)
	_, _ = w.Write(pdf)
}

// SummaryQR serves the summary as a QR code for scanning into a phone chat.
func (s *Server) SummaryQR(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rc, err := s.receipt(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	png, err := summary.QR(s.formatter.Render(rc), s.opts.QRSize)
	if err != nil {
		s.logger.Error("render qr", zap.Error(err))
		http.Error(w, "Failed to render QR code", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}
