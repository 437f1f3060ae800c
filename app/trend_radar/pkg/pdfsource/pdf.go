package pdfsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/logger"
)

const defaultPageHeight = 792.0

// File 磁盘上的 PDF：文字走 ledongthuc/pdf，图片与页数走 pdfcpu
type File struct {
	path   string
	file   *os.File
	reader *pdf.Reader
	pages  int

	imagesOnce sync.Once
	images     map[int][]Image
	imagesErr  error
}

// Open 打开 PDF 文件
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat pdf: %w", err)
	}

	reader, err := newReader(f, st.Size())
	if err != nil {
		f.Close()
		return nil, err
	}

	pages := reader.NumPage()
	if n, err := pageCount(f); err == nil {
		pages = n
	} else {
		logger.Log.Warnf("pdfcpu 无法读取页数，使用 ledongthuc 结果 [%s]: %v", filepath.Base(path), err)
	}

	return &File{path: path, file: f, reader: reader, pages: pages}, nil
}

func newReader(r io.ReaderAt, size int64) (reader *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("parse pdf: %v", rec)
		}
	}()
	reader, err = pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}
	return reader, nil
}

func pageCount(rs io.ReadSeeker) (int, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	ctx, err := api.ReadContext(rs, pdfmodel.NewDefaultConfiguration())
	if err != nil {
		return 0, err
	}
	return ctx.PageCount, nil
}

// Name 文件名
func (f *File) Name() string { return filepath.Base(f.path) }

// NumPages 页数
func (f *File) NumPages() int { return f.pages }

// Close 关闭文件
func (f *File) Close() error { return f.file.Close() }

// Page 读取一页的文字块与图片
func (f *File) Page(ctx context.Context, number int) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if number < 1 || number > f.pages {
		return Page{}, fmt.Errorf("%w: %d of %d", ErrPageRange, number, f.pages)
	}

	groups, err := f.readGroups(number)
	if err != nil {
		// 单页文字解析失败不致命，按空页处理
		logger.Log.Warnf("第 %d 页文字解析失败 [%s]: %v", number, f.Name(), err)
	}

	f.imagesOnce.Do(func() { f.images, f.imagesErr = f.extractImages() })
	if f.imagesErr != nil {
		logger.Log.Warnf("图片抽取失败 [%s]: %v", f.Name(), f.imagesErr)
	}

	return Page{
		Number: number,
		Text:   PageText(groups),
		Groups: groups,
		Images: f.images[number],
	}, nil
}

func (f *File) readGroups(number int) (groups []SpanGroup, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			groups, err = nil, fmt.Errorf("content stream: %v", rec)
		}
	}()
	p := f.reader.Page(number)
	if p.V.IsNull() {
		return nil, nil
	}
	return GroupTexts(p.Content().Text, pageHeight(p)), nil
}

func pageHeight(p pdf.Page) float64 {
	box := p.V.Key("MediaBox")
	if box.Kind() != pdf.Array || box.Len() < 4 {
		return defaultPageHeight
	}
	h := box.Index(3).Float64() - box.Index(1).Float64()
	if h <= 0 {
		return defaultPageHeight
	}
	return h
}

func (f *File) extractImages() (map[int][]Image, error) {
	if _, err := f.file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	pages, err := api.ExtractImagesRaw(f.file, nil, pdfmodel.NewDefaultConfiguration())
	if err != nil {
		return nil, err
	}

	out := make(map[int][]Image)
	for _, byObj := range pages {
		objNrs := make([]int, 0, len(byObj))
		for objNr := range byObj {
			objNrs = append(objNrs, objNr)
		}
		// map 无序，按对象号排序保证页内序号稳定
		sort.Ints(objNrs)
		for _, objNr := range objNrs {
			img := byObj[objNr]
			var data []byte
			if img.Reader != nil {
				data, err = io.ReadAll(img.Reader)
				if err != nil {
					return nil, fmt.Errorf("read image obj %d: %w", objNr, err)
				}
			}
			out[img.PageNr] = append(out[img.PageNr], Image{
				Xref:     img.ObjNr,
				Width:    img.Width,
				Height:   img.Height,
				Data:     data,
				MimeType: mimeType(img.FileType),
			})
		}
	}
	return out, nil
}

func mimeType(fileType string) string {
	switch strings.ToLower(fileType) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "tif", "tiff":
		return "image/tiff"
	case "webp":
		return "image/webp"
	default:
		return "image/png"
	}
}
