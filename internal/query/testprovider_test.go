package query

import "github.com/ragit-kb/ragit/internal/chunkmodel"

type fixedChunks []chunkmodel.Chunk

func (f fixedChunks) AllChunks() ([]chunkmodel.Chunk, error) { return []chunkmodel.Chunk(f), nil }

func mkChunk(path, data, title, summary string) chunkmodel.Chunk {
	c := chunkmodel.Chunk{
		Data:    data,
		Title:   title,
		Summary: summary,
		Source:  chunkmodel.NewFileSource(path, 0, nil),
	}
	c.ComputeUid()
	return c
}
