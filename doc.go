// Package paperdex provides an embeddable Go client for the paperdex
// paper retrieval engine backed by Redis.
//
// Papers are embedded once as a composite representation (title, summary,
// keywords, snippet) and ranked by cosine similarity at query time. An
// optional generator attaches a one-sentence relevance explanation to
// every search hit.
//
//	client, _ := paperdex.New(ctx,
//	    paperdex.WithRedis("localhost:6379", ""),
//	    paperdex.WithEmbedder(myEmbedder),
//	    paperdex.WithGenerator(myGenerator),
//	)
//	defer client.Close()
//
//	p, _ := client.AddPaper(ctx, paperdex.PaperInput{
//	    Title:    "Attention Is All You Need",
//	    Summary:  "Introduces the transformer architecture.",
//	    Keywords: []string{"attention", "transformers"},
//	})
//	matches, _ := client.Search(ctx, paperdex.SearchQuery{Query: "self-attention"})
package paperdex
