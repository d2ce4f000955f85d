package pdftext

import (
	"strconv"
	"strings"
)

// parseImageList parses `pdfimages -list` output into image geometry. Each
// data row carries pixel dimensions plus the effective render PPI; dividing
// the two recovers the placed size in page points (72/in). Rows with a
// missing or zero PPI produce a zero-sized ImageInfo, which downstream reads
// as unmeasurable.
//
// Expected row shape:
//
//	page num type width height color comp bpc enc interp object ID x-ppi y-ppi size ratio
func parseImageList(out string) []ImageInfo {
	var images []ImageInfo

	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 14 {
			continue
		}
		// Header and separator rows never start with a page number.
		if _, err := strconv.Atoi(fields[0]); err != nil {
			continue
		}
		if fields[2] != "image" && fields[2] != "mask" && fields[2] != "smask" && fields[2] != "stencil" {
			continue
		}

		widthPx, errW := strconv.ParseFloat(fields[3], 64)
		heightPx, errH := strconv.ParseFloat(fields[4], 64)
		xPPI, errX := strconv.ParseFloat(fields[12], 64)
		yPPI, errY := strconv.ParseFloat(fields[13], 64)

		info := ImageInfo{}
		if errW == nil && errH == nil && errX == nil && errY == nil && xPPI > 0 && yPPI > 0 {
			info.Width = widthPx / xPPI * 72
			info.Height = heightPx / yPPI * 72
		}
		images = append(images, info)
	}
	return images
}
