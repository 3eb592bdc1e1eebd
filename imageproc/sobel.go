package imageproc

// Sobel computes the horizontal and vertical gradients of a plane with the
// standard 3x3 Sobel kernels, replicating edge pixels at the borders.
func Sobel(g *Gray) (gx, gy *Gray) {
	gx = NewGray(g.W, g.H)
	gy = NewGray(g.W, g.H)
	at := func(x, y int) float64 {
		return g.Pix[clampInt(y, 0, g.H-1)*g.W+clampInt(x, 0, g.W-1)]
	}
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			tl, tc, tr := at(x-1, y-1), at(x, y-1), at(x+1, y-1)
			ml, mr := at(x-1, y), at(x+1, y)
			bl, bc, br := at(x-1, y+1), at(x, y+1), at(x+1, y+1)
			gx.Pix[y*g.W+x] = (tr + 2*mr + br) - (tl + 2*ml + bl)
			gy.Pix[y*g.W+x] = (bl + 2*bc + br) - (tl + 2*tc + tr)
		}
	}
	return gx, gy
}
