package literature

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"retrack/internal/model"
	"retrack/internal/repository"
	"retrack/internal/util"
	"retrack/pkg/metrics"
)

const (
	arxivAPIURL = "http://export.arxiv.org/api/query?id_list=%s"
	arxivPDFURL = "http://arxiv.org/pdf/%s.pdf"
)

// Blobs is the storage backend for uploaded PDFs.
type Blobs interface {
	Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, objectName string) (io.ReadCloser, error)
	Remove(ctx context.Context, objectName string) error
}

type Service struct {
	literature *repository.LiteratureRepository
	blobs      Blobs
	httpClient *http.Client
	logger     *zap.Logger
}

func NewService(literature *repository.LiteratureRepository, blobs Blobs, logger *zap.Logger) *Service {
	return &Service{
		literature: literature,
		blobs:      blobs,
		logger:     logger,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type UploadInput struct {
	Source     string
	Title      string
	Authors    string
	ArxivID    string
	File       io.Reader
	Size       int64
	Read       bool
	UploadDate time.Time
}

// Upload stores a document's PDF in the blob store and records its metadata.
// For arXiv uploads the title, authors and PDF are fetched from the arXiv
// export API instead of the form.
func (s *Service) Upload(ctx context.Context, userID int, in UploadInput) (*model.Literature, error) {
	title := in.Title
	authors := in.Authors
	file := in.File
	size := in.Size

	if in.Source == "arXiv" {
		arxiv, err := s.fetchArxivData(ctx, in.ArxivID)
		if err != nil {
			metrics.IncrementLiteratureUpload(in.Source, "failed")
			return nil, err
		}
		title = arxiv.Title
		authors = strings.Join(arxiv.Authors, ", ")
		file = bytes.NewReader(arxiv.PDF)
		size = int64(len(arxiv.PDF))
	}

	blobID := util.NewBlobID(userID)
	if err := s.blobs.Put(ctx, blobID+".pdf", file, size, "application/pdf"); err != nil {
		metrics.IncrementLiteratureUpload(in.Source, "failed")
		return nil, err
	}

	item := &model.Literature{
		URLID:      blobID,
		Title:      title,
		Authors:    authors,
		Source:     in.Source,
		Read:       in.Read,
		UserID:     userID,
		UploadDate: in.UploadDate,
	}
	if err := s.literature.Insert(ctx, item); err != nil {
		metrics.IncrementLiteratureUpload(in.Source, "failed")
		return nil, err
	}

	metrics.IncrementLiteratureUpload(in.Source, "success")
	return item, nil
}

func (s *Service) ListByUser(ctx context.Context, userID int) ([]model.Literature, error) {
	return s.literature.FindByUserID(ctx, userID)
}

func (s *Service) ToggleRead(ctx context.Context, urlID string) error {
	return s.literature.ToggleRead(ctx, urlID)
}

// Delete removes the metadata row and the stored PDF. A missing blob is
// logged but does not fail the delete.
func (s *Service) Delete(ctx context.Context, urlID string) error {
	if err := s.literature.Delete(ctx, urlID); err != nil {
		return err
	}
	if err := s.blobs.Remove(ctx, urlID+".pdf"); err != nil {
		s.logger.Warn("Failed to remove blob for deleted literature",
			zap.Error(err),
			zap.String("url_id", urlID),
		)
	}
	return nil
}

// StreamPDF returns the stored PDF for a document id.
func (s *Service) StreamPDF(ctx context.Context, urlID string) (io.ReadCloser, error) {
	return s.blobs.Get(ctx, urlID+".pdf")
}

type arxivData struct {
	Title   string
	Authors []string
	PDF     []byte
}

// atom subset of the arXiv export API response.
type arxivFeed struct {
	Entry struct {
		Title   string `xml:"title"`
		Authors []struct {
			Name string `xml:"name"`
		} `xml:"author"`
	} `xml:"entry"`
}

func (s *Service) fetchArxivData(ctx context.Context, arxivID string) (*arxivData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(arxivAPIURL, arxivID), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("arXiv metadata fetch failed", zap.Error(err), zap.String("arxiv_id", arxivID))
		return nil, fmt.Errorf("fetch arxiv metadata: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch arxiv metadata: status %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode arxiv feed: %w", err)
	}

	data := &arxivData{
		Title: strings.TrimSpace(strings.ReplaceAll(feed.Entry.Title, "\n", "")),
	}
	if data.Title == "" {
		data.Title = "Unknown Title"
	}
	for _, a := range feed.Entry.Authors {
		data.Authors = append(data.Authors, a.Name)
	}

	pdfReq, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(arxivPDFURL, arxivID), nil)
	if err != nil {
		return nil, err
	}
	pdfResp, err := s.httpClient.Do(pdfReq)
	if err != nil {
		s.logger.Error("arXiv PDF fetch failed", zap.Error(err), zap.String("arxiv_id", arxivID))
		return nil, fmt.Errorf("fetch arxiv pdf: %w", err)
	}
	defer pdfResp.Body.Close()
	if pdfResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch arxiv pdf: status %d", pdfResp.StatusCode)
	}

	data.PDF, err = io.ReadAll(pdfResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read arxiv pdf: %w", err)
	}
	return data, nil
}
