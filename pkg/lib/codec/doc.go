// Package codec 提供所有结构化字段共用的定长整数与长度前缀编解码原语
//
// 协议中的每个字段都使用大端定长编码，长度前缀字段采用
// 「先分配占位、写完内容后回填」的方式：
//
//	w := codec.NewWriter(64)
//	fld := w.AllocateField(codec.U16)
//	w.PutBytes(body)
//	if err := fld.UpdateDataLength(); err != nil {
//	    return err
//	}
//
// 解码时 ReadField 读取长度并返回一个有界视图，调用方只能在视图内读取：
//
//	r := codec.NewReader(raw)
//	body, err := r.ReadField(codec.U16)
//
// 读取越界总是返回 ErrShortBuffer，不会静默截断。
package codec
