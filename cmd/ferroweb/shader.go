package main

import "fmt"

// maxWebBlobs bounds the uniform array; WebGL fragment uniform space is small.
const maxWebBlobs = 128

// metaballKage evaluates the field per destination pixel. Blob positions
// are in simulation space, so pixels are scaled before sampling.
const metaballKage = `//kage:unit pixels
package main

const MaxBlobs = %d

var Blobs [MaxBlobs]vec3
var BlobCount float
var Threshold float
var Eps float
var Scale float
var Fill vec4
var Background vec4

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	p := dstPos.xy * Scale
	sum := 0.0
	for i := 0; i < MaxBlobs; i++ {
		if float(i) >= BlobCount {
			break
		}
		b := Blobs[i]
		d := p - b.xy
		sum += b.z * b.z / (dot(d, d) + Eps)
	}
	if sum > Threshold {
		return Fill
	}
	return Background
}
`

func kageSource(maxBlobs int) []byte {
	return []byte(fmt.Sprintf(metaballKage, maxBlobs))
}
