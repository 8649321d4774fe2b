package configstore

import (
	"context"
	"net/http"

	"DeBrief/internal/domain/repository"
	xhttp "DeBrief/pkg/http"
)

// HTTPDocument stores the blob at a URL that accepts GET and PUT, such as a
// small key-value service or an object-store presigned endpoint.
type HTTPDocument struct {
	client *xhttp.Client
	url    string
	token  string
}

func NewHTTPDocument(client *xhttp.Client, url, token string) *HTTPDocument {
	return &HTTPDocument{client: client, url: url, token: token}
}

func (d *HTTPDocument) Name() string { return "http" }

func (d *HTTPDocument) headers() map[string]string {
	h := map[string]string{"Accept": "application/json"}
	if d.token != "" {
		h["Authorization"] = "Bearer " + d.token
	}
	return h
}

func (d *HTTPDocument) Get(ctx context.Context) ([]byte, error) {
	var body []byte
	err := d.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     d.url,
		Headers: d.headers(),
	}, &body)
	if xhttp.IsStatus(err, http.StatusNotFound) {
		return nil, repository.ErrDocumentNotFound
	}
	if err != nil {
		return nil, repository.Unavailable("http-store", err)
	}
	return body, nil
}

func (d *HTTPDocument) Put(ctx context.Context, doc []byte) error {
	h := d.headers()
	h["Content-Type"] = "application/json"
	err := d.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPut,
		URL:     d.url,
		Headers: h,
		Body:    doc,
	}, nil)
	if err != nil {
		return repository.Unavailable("http-store", err)
	}
	return nil
}
