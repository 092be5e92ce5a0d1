package cloudinary

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/admin/search"

	"github.com/sagarc03/folio"
)

// maxSearchResults is the largest page the Search API serves.
const maxSearchResults = 500

// Expression renders q in the Search API query language.
func Expression(q folio.SearchQuery) string {
	terms := make([]string, 0, 1+len(q.ExcludePublicIDs)+len(q.ExcludeTags))

	if q.IncludeSubFolders {
		terms = append(terms, fmt.Sprintf("(folder=%s OR folder:%s/*)", quote(q.Folder), escape(q.Folder)))
	} else {
		terms = append(terms, "folder="+quote(q.Folder))
	}

	for _, id := range q.ExcludePublicIDs {
		terms = append(terms, "-public_id="+quote(id))
	}
	for _, tag := range q.ExcludeTags {
		terms = append(terms, "-tags="+quote(tag))
	}

	return strings.Join(terms, " AND ")
}

func quote(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
}

// escape protects reserved characters in unquoted (wildcard) terms.
func escape(v string) string {
	var b strings.Builder
	for _, r := range v {
		if strings.ContainsRune(`!(){}[]*^~?:\=&>< "`, r) {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func newestFirst(expression string, limit int) search.Query {
	return search.Query{
		Expression: expression,
		SortBy:     []search.SortByField{{"created_at": search.Descending}},
		MaxResults: min(limit, maxSearchResults),
		WithField:  []string{"tags"},
	}
}

// Search runs q against the Search API. Wildcard folder matches reach every
// descendant, so with IncludeSubFolders anything deeper than one level is
// dropped from the page and from TotalCount.
func (c *Client) Search(ctx context.Context, q folio.SearchQuery) (folio.SearchResult, error) {
	resp, err := c.search(ctx, newestFirst(Expression(q), q.MaxResults))
	if err != nil {
		return folio.SearchResult{}, fmt.Errorf("search %s: %w", q.Folder, err)
	}

	result := folio.SearchResult{
		Assets:     make([]folio.Asset, 0, len(resp.Assets)),
		TotalCount: resp.TotalCount,
	}

	for _, r := range resp.Assets {
		a := toAsset(r)
		if q.IncludeSubFolders && !withinOneLevel(q.Folder, a.Folder) {
			result.TotalCount--
			continue
		}
		result.Assets = append(result.Assets, a)
	}

	result.TotalCount = max(result.TotalCount, len(result.Assets))

	return result, nil
}

func (c *Client) search(ctx context.Context, q search.Query) (*admin.SearchResult, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	resp, err := c.cld.Admin.Search(ctx, q)
	if err != nil {
		return nil, callFailed(err)
	}
	if err := reported(resp.Error); err != nil {
		return nil, err
	}
	return resp, nil
}

func toAsset(r admin.SearchAsset) folio.Asset {
	folder := r.Folder
	if folder == "" {
		folder = folio.FolderOf(r.PublicID)
	}
	return folio.Asset{
		PublicID:  r.PublicID,
		Folder:    folder,
		Format:    r.Format,
		Width:     r.Width,
		Height:    r.Height,
		Bytes:     int64(r.Bytes),
		Tags:      r.Tags,
		SecureURL: r.SecureURL,
		CreatedAt: r.CreatedAt,
	}
}

func withinOneLevel(root, folder string) bool {
	if folder == root {
		return true
	}
	rest, ok := strings.CutPrefix(folder, root+"/")
	return ok && rest != "" && !strings.Contains(rest, "/")
}
