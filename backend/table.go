package backend

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// From เริ่ม query บนตารางของ backend (PostgREST-style)
//
//	client.From("orders").Select("*").Eq("id", id).Single().Execute(ctx, &order)
func (c *Client) From(table string) *QueryBuilder {
	return &QueryBuilder{c: c, table: table, method: "GET", selects: "*"}
}

type QueryBuilder struct {
	c       *Client
	table   string
	method  string
	body    any
	selects string
	filters []string // รูปแบบ "col=op.value" ตาม query string ของ rest layer
	orders  []string
	limit   int
	single  bool
}

func (q *QueryBuilder) Select(columns string) *QueryBuilder {
	q.method = "GET"
	if columns != "" {
		q.selects = columns
	}
	return q
}

// Insert ส่งแถวใหม่ (struct, map หรือ slice ของมัน)
func (q *QueryBuilder) Insert(rows any) *QueryBuilder {
	q.method = "POST"
	q.body = rows
	return q
}

func (q *QueryBuilder) Update(values any) *QueryBuilder {
	q.method = "PATCH"
	q.body = values
	return q
}

func (q *QueryBuilder) Delete() *QueryBuilder {
	q.method = "DELETE"
	return q
}

func (q *QueryBuilder) Eq(column string, value any) *QueryBuilder {
	q.filters = append(q.filters, fmt.Sprintf("%s=eq.%s", column, url.QueryEscape(fmt.Sprintf("%v", value))))
	return q
}

func (q *QueryBuilder) Ilike(column, pattern string) *QueryBuilder {
	q.filters = append(q.filters, fmt.Sprintf("%s=ilike.%s", column, url.QueryEscape(pattern)))
	return q
}

func (q *QueryBuilder) Order(column string, ascending bool) *QueryBuilder {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.orders = append(q.orders, column+"."+dir)
	return q
}

func (q *QueryBuilder) Limit(n int) *QueryBuilder {
	q.limit = n
	return q
}

// Single ขอแถวเดียวเป็น object - ศูนย์แถวจะได้ APIError code PGRST116
func (q *QueryBuilder) Single() *QueryBuilder {
	q.single = true
	return q
}

// Execute ยิงจริง; dest เป็น pointer ปลายทาง (nil = ไม่ต้องการแถวตอบกลับ)
func (q *QueryBuilder) Execute(ctx context.Context, dest any) error {
	params := make([]string, 0, len(q.filters)+3)
	if q.method == "GET" || dest != nil {
		params = append(params, "select="+url.QueryEscape(q.selects))
	}
	params = append(params, q.filters...)
	if len(q.orders) > 0 {
		params = append(params, "order="+url.QueryEscape(strings.Join(q.orders, ",")))
	}
	if q.limit > 0 {
		params = append(params, "limit="+strconv.Itoa(q.limit))
	}

	path := "/rest/v1/" + q.table
	if len(params) > 0 {
		path += "?" + strings.Join(params, "&")
	}

	body, err := marshalBody(q.body)
	if err != nil {
		return err
	}
	req, err := q.c.newRequest(ctx, q.method, path, body)
	if err != nil {
		return err
	}

	if q.single {
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	}
	if q.method == "POST" || q.method == "PATCH" {
		if dest != nil {
			req.Header.Set("Prefer", "return=representation")
		} else {
			req.Header.Set("Prefer", "return=minimal")
		}
	}

	return q.c.do(req, dest)
}
